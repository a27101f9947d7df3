// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package paginator splits a counted, sliceable source into numbered pages.
package paginator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrPageNotAnInteger is returned when the requested page is not a whole number.
	ErrPageNotAnInteger = errors.New("page number is not an integer")

	// ErrEmptyPage is returned when the requested page is outside [1, NumPages].
	ErrEmptyPage = errors.New("page contains no results")
)

// Source provides the items being paginated.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// Funcs adapts a pair of functions to Source.
type Funcs[T any] struct {
	CountFunc func(ctx context.Context) (int, error)
	SliceFunc func(ctx context.Context, offset, limit int) ([]T, error)
}

func (f Funcs[T]) Count(ctx context.Context) (int, error) { return f.CountFunc(ctx) }

func (f Funcs[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	return f.SliceFunc(ctx, offset, limit)
}

// Paginator pages through Source, PerPage items at a time.
type Paginator[T any] struct {
	Source  Source[T]
	PerPage int
}

// Page is one page of results.
type Page[T any] struct {
	Number   int
	NumPages int
	Items    []T
}

func (p Page[T]) HasNext() bool       { return p.Number < p.NumPages }
func (p Page[T]) HasPrevious() bool   { return p.Number > 1 }
func (p Page[T]) NextNumber() int     { return p.Number + 1 }
func (p Page[T]) PreviousNumber() int { return p.Number - 1 }
func (p Page[T]) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

// Count returns the total number of items.
func (p Paginator[T]) Count(ctx context.Context) (int, error) {
	return p.Source.Count(ctx)
}

// NumPages returns the number of pages. An empty source still has one page.
func (p Paginator[T]) NumPages(ctx context.Context) (int, error) {
	count, err := p.Source.Count(ctx)
	if err != nil {
		return 0, err
	}

	return numPages(count, p.PerPage), nil
}

func numPages(count, perPage int) int {
	if count == 0 || perPage <= 0 {
		return 1
	}

	return (count + perPage - 1) / perPage
}

// Page returns the page numbered by raw.
//
// raw must parse as an integer, otherwise ErrPageNotAnInteger is returned.
// Numbers below 1 or above NumPages yield ErrEmptyPage.
func (p Paginator[T]) Page(ctx context.Context, raw string) (Page[T], error) {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Page[T]{}, fmt.Errorf("%w: %q", ErrPageNotAnInteger, raw)
	}

	return p.PageNumber(ctx, number)
}

// PageNumber is like Page for an already parsed number.
func (p Paginator[T]) PageNumber(ctx context.Context, number int) (Page[T], error) {
	count, err := p.Source.Count(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	pages := numPages(count, p.PerPage)
	if number < 1 || number > pages {
		return Page[T]{}, fmt.Errorf("%w: page %d of %d", ErrEmptyPage, number, pages)
	}

	var items []T

	if count > 0 {
		items, err = p.Source.Slice(ctx, (number-1)*p.PerPage, p.PerPage)
		if err != nil {
			return Page[T]{}, err
		}
	}

	return Page[T]{Number: number, NumPages: pages, Items: items}, nil
}

// Lenient resolves raw the forgiving way list views do: a non-integer
// yields the first page and an out-of-range number yields the last page.
func (p Paginator[T]) Lenient(ctx context.Context, raw string) (Page[T], error) {
	page, err := p.Page(ctx, raw)

	switch {
	case errors.Is(err, ErrPageNotAnInteger):
		return p.PageNumber(ctx, 1)
	case errors.Is(err, ErrEmptyPage):
		pages, err := p.NumPages(ctx)
		if err != nil {
			return Page[T]{}, err
		}

		return p.PageNumber(ctx, pages)
	}

	return page, err
}
