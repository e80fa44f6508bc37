package posts

import (
	"plinth/app/models"
	"plinth/core/types"
)

// Command, query and event names owned by the posts module.
const (
	CreateCommand = "posts.create"
	UpdateCommand = "posts.update"
	DeleteCommand = "posts.delete"

	GetQuery  = "posts.get"
	ListQuery = "posts.list"

	PostCreatedEvent = "posts.created"
	PostUpdatedEvent = "posts.updated"
	PostDeletedEvent = "posts.deleted"
)

// Create creates a post. The handler fills Result.
type Create struct {
	Req    *models.CreatePostRequest
	Result *models.PostResponse
}

func (*Create) CommandName() string { return CreateCommand }

// Update updates a post. The handler fills Result.
type Update struct {
	Id     uint
	Req    *models.UpdatePostRequest
	Result *models.PostResponse
}

func (*Update) CommandName() string { return UpdateCommand }

// Delete removes a post.
type Delete struct {
	Id uint
}

func (*Delete) CommandName() string { return DeleteCommand }

// Get fetches one post by id.
type Get struct {
	Id uint
}

func (*Get) QueryName() string { return GetQuery }

// List fetches a page of posts.
type List struct {
	Page      *int
	Limit     *int
	SortBy    *string
	SortOrder *string
}

func (*List) QueryName() string { return ListQuery }

// ListResult is the payload returned by the list query handler.
type ListResult = types.PaginatedResponse
