package query

import (
	"context"
	"fmt"

	"github.com/asaidimu/go-paginate/utils"
)

// RecordPage is one page of typed records.
type RecordPage[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	PageCount   int `json:"pageCount"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// PaginateRecords pages a slice of structs. Records are converted to generic
// records through their JSON form, so filters and sort keys use the JSON
// field names, and the page is converted back into T.
func PaginateRecords[T any](ctx context.Context, p *Paginator, collection string, records []T, opts *Options) (*RecordPage[T], error) {
	if p == nil {
		var err error
		if p, err = defaultPaginator(); err != nil {
			return nil, err
		}
	}

	docs, err := utils.StructsToMaps(records)
	if err != nil {
		return nil, fmt.Errorf("failed to convert records of '%s': %w", collection, err)
	}
	data := map[string]any{collection: docs}

	result, err := p.Paginate(ctx, collection, data, opts)
	if err != nil {
		return nil, err
	}

	page := &RecordPage[T]{
		Items:       make([]T, 0, len(result.Items)),
		Total:       result.Total,
		PageCount:   result.PageCount,
		CurrentPage: result.CurrentPage,
		Limit:       result.Limit,
	}
	for _, doc := range result.Items {
		item, err := utils.MapToStruct[T](doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert record of '%s': %w", collection, err)
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}
