package graph

import (
	"context"
	"fmt"

	"github.com/UkralStul/social-feed/graph/generated"
	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage"
)

// === Comment Resolvers ===

// Owner резолвит автора комментария через Dataloader.
func (r *commentResolver) Owner(ctx context.Context, obj *domain.Comment) (*domain.User, error) {
	return r.loadUser(ctx, obj.OwnerID)
}

// Post резолвит пост комментария; null, если пост уже удален.
func (r *commentResolver) Post(ctx context.Context, obj *domain.Comment) (*domain.Post, error) {
	return r.loadPost(ctx, obj.PostID)
}

// === Mutation Resolvers ===

func (r *mutationResolver) CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	return r.Feed.CreateUser(ctx, input)
}

func (r *mutationResolver) UpdateUser(ctx context.Context, id string, input domain.UserPatch) (*domain.User, error) {
	return r.Feed.UpdateUser(ctx, id, input)
}

func (r *mutationResolver) DeleteUser(ctx context.Context, id string) (string, error) {
	return r.Feed.DeleteUser(ctx, id)
}

func (r *mutationResolver) CreatePost(ctx context.Context, input domain.NewPost) (*domain.Post, error) {
	return r.Feed.CreatePost(ctx, input)
}

func (r *mutationResolver) UpdatePost(ctx context.Context, id string, input domain.PostPatch) (*domain.Post, error) {
	return r.Feed.UpdatePost(ctx, id, input)
}

func (r *mutationResolver) DeletePost(ctx context.Context, id string) (string, error) {
	return r.Feed.DeletePost(ctx, id)
}

// LikePost - переключатель: повторный вызов снимает лайк.
func (r *mutationResolver) LikePost(ctx context.Context, id string, userID string) (*domain.Post, error) {
	return r.Feed.LikePost(ctx, id, userID)
}

func (r *mutationResolver) CreateComment(ctx context.Context, input domain.NewComment) (*domain.Comment, error) {
	return r.Feed.CreateComment(ctx, input)
}

func (r *mutationResolver) DeleteComment(ctx context.Context, id string) (string, error) {
	return r.Feed.DeleteComment(ctx, id)
}

// === Post Resolvers ===

func (r *postResolver) Owner(ctx context.Context, obj *domain.Post) (*domain.User, error) {
	return r.loadUser(ctx, obj.OwnerID)
}

func (r *postResolver) Comments(ctx context.Context, obj *domain.Post) ([]*domain.Comment, error) {
	comments, err := r.loadComments(ctx, obj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post comments: %w", err)
	}
	return comments, nil
}

func (r *postResolver) HasLiked(ctx context.Context, obj *domain.Post, userID string) (bool, error) {
	return r.Storage.HasLiked(ctx, obj.ID, userID)
}

// === Query Resolvers ===

func (r *queryResolver) Users(ctx context.Context, page *int, limit *int, sortBy *string) (*domain.UserPage, error) {
	return r.Storage.ListUsers(ctx, pageArgs(page, limit, sortBy))
}

func (r *queryResolver) User(ctx context.Context, id string) (*domain.User, error) {
	return notFoundAsNil(r.Storage.GetUserByID(ctx, id))
}

func (r *queryResolver) Posts(ctx context.Context, page *int, limit *int, sortBy *string) (*domain.PostPage, error) {
	return r.Storage.ListPosts(ctx, storage.PostFilter{}, pageArgs(page, limit, sortBy))
}

func (r *queryResolver) PostsByUser(ctx context.Context, userID string, page *int, limit *int) (*domain.PostPage, error) {
	return r.Storage.ListPosts(ctx, storage.PostFilter{OwnerID: userID}, pageArgs(page, limit, nil))
}

func (r *queryResolver) PostsByTag(ctx context.Context, tag string, page *int, limit *int) (*domain.PostPage, error) {
	return r.Storage.ListPosts(ctx, storage.PostFilter{Tag: tag}, pageArgs(page, limit, nil))
}

func (r *queryResolver) Post(ctx context.Context, id string) (*domain.Post, error) {
	return notFoundAsNil(r.Storage.GetPostByID(ctx, id))
}

func (r *queryResolver) Comments(ctx context.Context, page *int, limit *int) (*domain.CommentPage, error) {
	return r.Storage.ListComments(ctx, storage.CommentFilter{}, pageArgs(page, limit, nil))
}

func (r *queryResolver) CommentsByPost(ctx context.Context, postID string, page *int, limit *int) (*domain.CommentPage, error) {
	return r.Storage.ListComments(ctx, storage.CommentFilter{PostID: postID}, pageArgs(page, limit, nil))
}

func (r *queryResolver) CommentsByUser(ctx context.Context, userID string, page *int, limit *int) (*domain.CommentPage, error) {
	return r.Storage.ListComments(ctx, storage.CommentFilter{OwnerID: userID}, pageArgs(page, limit, nil))
}

func (r *queryResolver) Tags(ctx context.Context) ([]string, error) {
	return r.Storage.Tags(ctx)
}

// === Subscription Resolvers ===

func (r *subscriptionResolver) UserCreated(ctx context.Context) (<-chan *domain.User, error) {
	return r.Feed.UserCreated(ctx), nil
}

func (r *subscriptionResolver) UserUpdated(ctx context.Context) (<-chan *domain.User, error) {
	return r.Feed.UserUpdated(ctx), nil
}

func (r *subscriptionResolver) UserDeleted(ctx context.Context) (<-chan string, error) {
	return r.Feed.UserDeleted(ctx), nil
}

func (r *subscriptionResolver) PostCreated(ctx context.Context) (<-chan *domain.Post, error) {
	return r.Feed.PostCreated(ctx), nil
}

func (r *subscriptionResolver) PostUpdated(ctx context.Context) (<-chan *domain.Post, error) {
	return r.Feed.PostUpdated(ctx), nil
}

func (r *subscriptionResolver) PostDeleted(ctx context.Context) (<-chan string, error) {
	return r.Feed.PostDeleted(ctx), nil
}

func (r *subscriptionResolver) PostLiked(ctx context.Context) (<-chan *domain.Post, error) {
	return r.Feed.PostLiked(ctx), nil
}

// CommentCreated с postId отдает только комментарии к этому посту.
func (r *subscriptionResolver) CommentCreated(ctx context.Context, postID *string) (<-chan *domain.Comment, error) {
	return r.Feed.CommentCreated(ctx, postID), nil
}

func (r *subscriptionResolver) CommentDeleted(ctx context.Context) (<-chan string, error) {
	return r.Feed.CommentDeleted(ctx), nil
}

// === User Resolvers ===

func (r *userResolver) Posts(ctx context.Context, obj *domain.User) ([]*domain.Post, error) {
	return r.Storage.FindPosts(ctx, storage.PostFilter{OwnerID: obj.ID})
}

func (r *userResolver) Comments(ctx context.Context, obj *domain.User) ([]*domain.Comment, error) {
	return r.Storage.FindComments(ctx, storage.CommentFilter{OwnerID: obj.ID})
}

// === Boilerplate: Связывание резолверов с сгенерированным интерфейсом ===

// Comment returns generated.CommentResolver implementation.
func (r *Resolver) Comment() generated.CommentResolver { return &commentResolver{r} }

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

// Post returns generated.PostResolver implementation.
func (r *Resolver) Post() generated.PostResolver { return &postResolver{r} }

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

// Subscription returns generated.SubscriptionResolver implementation.
func (r *Resolver) Subscription() generated.SubscriptionResolver { return &subscriptionResolver{r} }

// User returns generated.UserResolver implementation.
func (r *Resolver) User() generated.UserResolver { return &userResolver{r} }

type commentResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type postResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type subscriptionResolver struct{ *Resolver }
type userResolver struct{ *Resolver }
