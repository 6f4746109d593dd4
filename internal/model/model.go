package model

// All returns every model for schema migration
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&User{},
		&TenantUser{},
		&Role{},
		&UserRole{},
		&Division{},
		&Department{},
		&ServiceArea{},
		&Team{},
		&JobTitle{},
		&Program{},
		&Account{},
		&Contact{},
		&Entity{},
		&Location{},
		&TenantActivityLog{},
		&UserActivityLog{},
		&DivisionActivityLog{},
		&DepartmentActivityLog{},
		&ServiceAreaActivityLog{},
		&TeamActivityLog{},
		&JobTitleActivityLog{},
		&ProgramActivityLog{},
		&AccountActivityLog{},
		&ContactActivityLog{},
		&EntityActivityLog{},
		&LocationActivityLog{},
	}
}
