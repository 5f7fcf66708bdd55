package mocks

import (
	"context"

	"wscontest/core/wikisource"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of wikisource.Client
type Client struct {
	mock.Mock
}

func (m *Client) CreatedPageList(ctx context.Context, book string) ([]string, error) {
	args := m.Called(ctx, book)
	if pages, ok := args.Get(0).([]string); ok {
		return pages, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) PageStatus(ctx context.Context, page string) (*wikisource.PageStatus, error) {
	args := m.Called(ctx, page)
	if status, ok := args.Get(0).(*wikisource.PageStatus); ok {
		return status, args.Error(1)
	}
	return nil, args.Error(1)
}
