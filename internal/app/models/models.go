package models

import "time"

// User is the canonical identity record, normalized from the
// backend's mixed Indonesian/English field names by the upstream client.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tool condition values mirror the backend enum.
const (
	ConditionGood        = "baik"
	ConditionMinorDamage = "rusak_ringan"
	ConditionMajorDamage = "rusak_berat"
)

type Tool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CategoryID  string    `json:"categoryId"`
	Stock       int       `json:"stock"`
	Available   int       `json:"available"`
	Image       string    `json:"image,omitempty"`
	Condition   string    `json:"condition"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ToolCount   int    `json:"toolCount"`
}

// Borrowing status values.
const (
	BorrowingPending  = "pending"
	BorrowingApproved = "approved"
	BorrowingRejected = "rejected"
	BorrowingReturned = "returned"
	BorrowingOverdue  = "overdue"
)

type Borrowing struct {
	ID               string     `json:"id"`
	ToolID           string     `json:"toolId"`
	Tool             *Tool      `json:"tool,omitempty"`
	UserID           string     `json:"userId"`
	User             *User      `json:"user,omitempty"`
	BorrowDate       time.Time  `json:"borrowDate"`
	ReturnDate       time.Time  `json:"returnDate"`
	ActualReturnDate *time.Time `json:"actualReturnDate,omitempty"`
	Quantity         int        `json:"quantity"`
	Status           string     `json:"status"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type ActivityLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	User        *User     `json:"user,omitempty"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type DashboardStats struct {
	TotalTools       int `json:"totalTools"`
	TotalUsers       int `json:"totalUsers"`
	ActiveBorrowings int `json:"activeBorrowings"`
	PendingApprovals int `json:"pendingApprovals"`
	OverdueItems     int `json:"overdueItems"`
}

// CreateBorrowingRequest is the borrower-side request body.
type CreateBorrowingRequest struct {
	ToolID     string `json:"toolId" binding:"required"`
	BorrowDate string `json:"borrowDate" binding:"required"`
	ReturnDate string `json:"returnDate" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	Notes      string `json:"notes"`
}
