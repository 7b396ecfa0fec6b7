// Package repository provides data access for boards, cards, and
// automation rules on top of GORM.
package repository

import "errors"

// Sentinel errors returned by repositories. Callers match with errors.Is.
var (
	ErrRuleNotFound   = errors.New("automation rule not found")
	ErrCardNotFound   = errors.New("card not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrBoardNotFound  = errors.New("board not found")
)
