package dto

// AddBookRequest HTTP图书录入请求(管理员)
type AddBookRequest struct {
	Title           string `json:"title" binding:"required,max=200" example:"围城"`
	Author          string `json:"author" binding:"required,max=100" example:"钱锺书"`
	Genre           string `json:"genre" binding:"omitempty,max=50" example:"小说"`
	PublicationYear int    `json:"publication_year" binding:"omitempty,min=1000" example:"1947"`
	ISBN            string `json:"isbn" binding:"omitempty,max=20" example:"9787020090006"`
	Description     string `json:"description" binding:"omitempty,max=5000" example:"一部经典讽刺小说"`
	CoverImageURL   string `json:"cover_image_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	TotalCopies     int    `json:"total_copies" binding:"min=0" example:"5"`
}

// UpdateBookRequest HTTP图书更新请求(管理员;字段均可选)
// TotalCopies为nil时不调整馆藏总数
type UpdateBookRequest struct {
	Title           string `json:"title" binding:"omitempty,max=200"`
	Author          string `json:"author" binding:"omitempty,max=100"`
	Genre           string `json:"genre" binding:"omitempty,max=50"`
	PublicationYear int    `json:"publication_year" binding:"omitempty,min=1000"`
	ISBN            string `json:"isbn" binding:"omitempty,max=20"`
	Description     string `json:"description" binding:"omitempty,max=5000"`
	CoverImageURL   string `json:"cover_image_url" binding:"omitempty,url,max=500"`
	TotalCopies     *int   `json:"total_copies" binding:"omitempty,min=0"`
}

// BookResponse HTTP图书详情响应
type BookResponse struct {
	ID              uint   `json:"id" example:"1"`
	Title           string `json:"title" example:"围城"`
	Author          string `json:"author" example:"钱锺书"`
	Genre           string `json:"genre,omitempty" example:"小说"`
	PublicationYear int    `json:"publication_year,omitempty" example:"1947"`
	ISBN            string `json:"isbn,omitempty" example:"9787020090006"`
	Description     string `json:"description,omitempty"`
	CoverImageURL   string `json:"cover_image_url,omitempty"`
	TotalCopies     int    `json:"total_copies" example:"5"`
	AvailableCopies int    `json:"available_copies" example:"3"`
	CreatedAt       string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// BookListItem HTTP图书列表项(不含description)
type BookListItem struct {
	ID              uint   `json:"id" example:"1"`
	Title           string `json:"title" example:"围城"`
	Author          string `json:"author" example:"钱锺书"`
	Genre           string `json:"genre,omitempty" example:"小说"`
	PublicationYear int    `json:"publication_year,omitempty" example:"1947"`
	ISBN            string `json:"isbn,omitempty" example:"9787020090006"`
	CoverImageURL   string `json:"cover_image_url,omitempty"`
	TotalCopies     int    `json:"total_copies" example:"5"`
	AvailableCopies int    `json:"available_copies" example:"3"`
	CreatedAt       string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"围城"`
	Genre    string `form:"genre" binding:"omitempty,max=50" example:"小说"`
	Author   string `form:"author" binding:"omitempty,max=100" example:"钱锺书"`
	Year     int    `form:"year" binding:"omitempty,min=1000" example:"1947"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=title_asc year_desc created_at_desc" example:"created_at_desc"`
}
