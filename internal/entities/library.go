package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	return r == UserRoleMember || r == UserRoleAdmin
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"size:256" json:"full_name"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"` // bcrypt hash, never serialized
	Role         UserRole       `gorm:"size:20;default:'member'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type Author struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:256" json:"name"`
	Nationality string    `gorm:"size:100" json:"nationality,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"index;size:512" json:"title"`
	AuthorID        uint           `gorm:"index" json:"author_id"`
	Author          Author         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ISBN            string         `gorm:"index;size:20" json:"isbn,omitempty"`
	PublishedYear   int            `json:"published_year,omitempty"`
	CopiesTotal     int            `json:"copies_total"`
	CopiesAvailable int            `json:"copies_available"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// BorrowRecord is one loan of a book to a user. A nil ReturnDate means the
// loan is still open. Records are closed exactly once and never deleted.
type BorrowRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index" json:"user_id"`
	BookID     uint       `gorm:"index" json:"book_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	BorrowDate time.Time  `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsOpen reports whether the book is still checked out.
func (r BorrowRecord) IsOpen() bool {
	return r.ReturnDate == nil
}

func (User) TableName() string {
	return "users"
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}
