// Package record derives column layouts from Go struct types.
//
// A Descriptor is computed once per record type and then drives every
// statement the store builds: the column list, the placeholder list and
// the order in which values are extracted and assigned all come from the
// same Fields slice.
//
//	type Expense struct {
//		Amount      float64
//		Category    string
//		ExpenseDate time.Time
//		Comment     string
//		PK          int64 `db:"pk,pk"`
//	}
//
// yields table "expense" with key column "pk" and columns
// amount REAL, category TEXT, expense_date TIMESTAMP, comment TEXT.
package record
