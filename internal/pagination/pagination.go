// Package pagination computes clamped pages over a counted result set.
//
// A requested page that is not a positive integer becomes page 1 and a page
// beyond the end becomes the last page, so callers always get a valid page.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultSize is the page size used when none is configured.
const DefaultSize = 10

// Page describes one page of a collection of Count items.
type Page struct {
	Number     int
	Size       int
	Count      int64
	TotalPages int
	Next       *int
	Previous   *int
}

// ParsePage converts a raw page parameter to an int, mapping anything that is
// not an integer to 1. Range clamping happens in New.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

// New returns the page numbered requested, clamped into [1, TotalPages].
// An empty collection still has one (empty) page.
func New(count int64, requested, size int) Page {
	if size <= 0 {
		size = DefaultSize
	}
	if count < 0 {
		count = 0
	}
	pages := int((count + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	number := requested
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	p := Page{Number: number, Size: size, Count: count, TotalPages: pages}
	if number < pages {
		next := number + 1
		p.Next = &next
	}
	if number > 1 {
		prev := number - 1
		p.Previous = &prev
	}
	return p
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Next != nil }

// HasPrevious reports whether a preceding page exists.
func (p Page) HasPrevious() bool { return p.Previous != nil }

// Numbers lists every page number, for rendering page links.
func (p Page) Numbers() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Envelope is the JSON body returned for a paginated listing.
type Envelope[T any] struct {
	Count        int64 `json:"count"`
	PageSize     int   `json:"page_size"`
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	NextPage     *int  `json:"next_page"`
	PreviousPage *int  `json:"previous_page"`
	Results      []T   `json:"results"`
}

// NewEnvelope wraps results with the metadata of p. A nil results slice is
// rendered as an empty array.
func NewEnvelope[T any](p Page, results []T) Envelope[T] {
	if results == nil {
		results = []T{}
	}
	return Envelope[T]{
		Count:        p.Count,
		PageSize:     p.Size,
		CurrentPage:  p.Number,
		TotalPages:   p.TotalPages,
		NextPage:     p.Next,
		PreviousPage: p.Previous,
		Results:      results,
	}
}
