package domain

// Tables migration order follows foreign key dependencies
var Tables = []interface{}{
	// Auth
	&User{},
	&AccessToken{},
	// Catalog
	&Customer{},
	&Product{},
	&CustomerProduct{},
	// Sales
	&Order{},
	&OrderDetail{},
}
