package service

// Payloads accepted by the services. Create payloads require every field;
// update payloads use pointers so that only supplied fields are validated and written.

type RegisterInput struct {
	Firstname            string `json:"firstname" validate:"required,max=255"`
	Lastname             string `json:"lastname" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,strongpassword,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type UserUpdateInput struct {
	Firstname string `json:"firstname" validate:"required,max=255"`
	Lastname  string `json:"lastname" validate:"required,max=255"`
}

type CustomerInput struct {
	Firstname   string `json:"firstname" validate:"required,max=255"`
	Lastname    string `json:"lastname" validate:"required,max=255"`
	Phonenumber string `json:"phonenumber" validate:"required,min=10,max=13"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Address     string `json:"address" validate:"required,max=1000"`
}

type CustomerUpdateInput struct {
	Firstname   *string `json:"firstname" validate:"omitempty,max=255"`
	Lastname    *string `json:"lastname" validate:"omitempty,max=255"`
	Phonenumber *string `json:"phonenumber" validate:"omitempty,min=10,max=13"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Address     *string `json:"address" validate:"omitempty,max=1000"`
}

type ProductInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	UnitPrice int64  `json:"unit_price" validate:"required,min=1"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
	Category  string `json:"category" validate:"required,category"`
}

type ProductUpdateInput struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	UnitPrice *int64  `json:"unit_price" validate:"omitempty,min=1"`
	Quantity  *int64  `json:"quantity" validate:"omitempty,min=1"`
	Category  *string `json:"category" validate:"omitempty,category"`
}

type OrderLineInput struct {
	ProductID int64 `json:"productId" validate:"required,min=1"`
	Quantity  int64 `json:"quantity" validate:"required,min=1"`
}

type OrderInput struct {
	Products    []OrderLineInput `json:"products" validate:"required,min=1,dive"`
	TotalAmount int64            `json:"totalAmount" validate:"required,min=1"`
}

type OrderUpdateInput struct {
	Status string `json:"status" validate:"required,max=50"`
}

type OrderDetailInput struct {
	OrderID   int64 `json:"order_id" validate:"required,min=1"`
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int64 `json:"quantity" validate:"required,min=1"`
}

type OrderDetailUpdateInput struct {
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}
