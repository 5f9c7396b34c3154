package dto

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=128" example:"Computer Science"`
	Description *string `json:"description"`
}

// ModuleRequest creates or updates a module
type ModuleRequest struct {
	Name        string  `json:"name" binding:"required,max=128" example:"Web Development"`
	Code        string  `json:"code" binding:"required,max=32" example:"CS204"`
	Description *string `json:"description"`
	CategoryID  int64   `json:"categoryId" binding:"required,min=1" example:"1"`
}
