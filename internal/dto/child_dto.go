package dto

// RegisterChildRequest registers a new child and issues a sharing code.
type RegisterChildRequest struct {
	Name   string `json:"name" binding:"required"`
	Age    int    `json:"age" binding:"required"`
	Gender string `json:"gender"`
}

type RegisterChildResponse struct {
	ChildID string `json:"child_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UpdateChildRequest corrects a child's name or age. Test instances already
// started keep the name and age snapshot they were created with.
type UpdateChildRequest struct {
	Name string `json:"name" binding:"required"`
	Age  int    `json:"age" binding:"required"`
}

// ChildLoginRequest looks a child up by sharing code.
type ChildLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

type ChildLoginResponse struct {
	ChildID string `json:"child_id"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
}
