package models

import (
	"fmt"
	"strconv"
	"time"
)

// Book is one catalog record. Year and Price are nil when unset.
type Book struct {
	ID     int64
	Title  string
	Author string
	Year   *int
	Price  *float64
}

// BookInput holds the fields of a Book before the store assigns an ID.
type BookInput struct {
	Title  string
	Author string
	Year   *int
	Price  *float64
}

// Input drops the ID.
func (b Book) Input() BookInput {
	return BookInput{Title: b.Title, Author: b.Author, Year: b.Year, Price: b.Price}
}

// YearText returns the year or an empty string.
func (b Book) YearText() string {
	if b.Year == nil {
		return ""
	}
	return strconv.Itoa(*b.Year)
}

// PriceText returns the price in its shortest decimal form or an empty string.
func (b Book) PriceText() string {
	if b.Price == nil {
		return ""
	}
	return strconv.FormatFloat(*b.Price, 'f', -1, 64)
}

// String renders the one-line console form.
func (b Book) String() string {
	year := "N/A"
	if b.Year != nil {
		year = b.YearText()
	}
	s := fmt.Sprintf("[%d] %s - %s (%s)", b.ID, b.Title, b.Author, year)
	if b.Price != nil {
		s += fmt.Sprintf(" R$ %.2f", *b.Price)
	}
	return s
}

// Archive is one backup file of the store.
type Archive struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// IntPtr and FloatPtr are helpers for optional fields.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
