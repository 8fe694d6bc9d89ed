package dto

// EmployeeDTO - сотрудник из внешнего справочника. Ядро хранит только его идентификатор.
type EmployeeDTO struct {
	ID         uint64
	FullName   string
	Department string
	IsActive   bool
}
