package entities

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
)

func (t ChangeType) String() string {
	return string(t)
}

// ChangeEvent полный снимок заказа после изменения.
type ChangeEvent struct {
	Type  ChangeType
	Order Order
}
