package domain

import (
	"errors"

	"github.com/bwmarrin/snowflake"
)

// ScopeKind tags the three valid shapes of an override scope. A scope with
// neither a seller nor a category has no meaning and cannot be constructed.
type ScopeKind int

const (
	ScopeSellerOnly ScopeKind = iota + 1
	ScopeCategoryOnly
	ScopeSellerAndCategory
)

// Scope identifies who an override applies to.
type Scope struct {
	kind       ScopeKind
	sellerID   snowflake.ID
	categoryID snowflake.ID
}

var ErrEmptyScope = errors.New("override_scope_empty")

func SellerScope(sellerID snowflake.ID) (Scope, error) {
	if sellerID == 0 {
		return Scope{}, ErrEmptyScope
	}
	return Scope{kind: ScopeSellerOnly, sellerID: sellerID}, nil
}

func CategoryScope(categoryID snowflake.ID) (Scope, error) {
	if categoryID == 0 {
		return Scope{}, ErrEmptyScope
	}
	return Scope{kind: ScopeCategoryOnly, categoryID: categoryID}, nil
}

func SellerAndCategoryScope(sellerID, categoryID snowflake.ID) (Scope, error) {
	if sellerID == 0 || categoryID == 0 {
		return Scope{}, ErrEmptyScope
	}
	return Scope{kind: ScopeSellerAndCategory, sellerID: sellerID, categoryID: categoryID}, nil
}

// NewScope builds a scope from the nullable pair representation used at the
// API and storage boundaries, rejecting the all-null case.
func NewScope(sellerID, categoryID *snowflake.ID) (Scope, error) {
	switch {
	case sellerID != nil && categoryID != nil:
		return SellerAndCategoryScope(*sellerID, *categoryID)
	case sellerID != nil:
		return SellerScope(*sellerID)
	case categoryID != nil:
		return CategoryScope(*categoryID)
	default:
		return Scope{}, ErrEmptyScope
	}
}

func (s Scope) Kind() ScopeKind { return s.kind }

// SellerID returns the scoped seller, or nil for category-only scopes.
func (s Scope) SellerID() *snowflake.ID {
	if s.kind == ScopeCategoryOnly {
		return nil
	}
	id := s.sellerID
	return &id
}

// CategoryID returns the scoped category, or nil for seller-only scopes.
func (s Scope) CategoryID() *snowflake.ID {
	if s.kind == ScopeSellerOnly {
		return nil
	}
	id := s.categoryID
	return &id
}
