package domain

// DefaultCategories are the suggested categories per transaction type.
// Categories stay free text; these only seed pickers and reports.
var DefaultCategories = map[TransactionType][]string{
	TransactionTypeIncome: {
		"Salary",
		"Freelance",
		"Investment",
		"Gift",
		"Other",
	},
	TransactionTypeExpense: {
		"Food & Groceries",
		"Transportation",
		"Entertainment",
		"Bills & Utilities",
		"Shopping",
		"Healthcare",
		"Education",
		"Other",
	},
}

