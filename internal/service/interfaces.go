package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/access"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/types"
)

// ITokenValidator validates bearer tokens for the auth middleware.
type ITokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IAuthService defines the interface for token operations
type IAuthService interface {
	ITokenValidator
	GenerateToken(claims *types.TokenClaims, ttl time.Duration) (string, error)
}

// IUserService defines the interface for user operations
type IUserService interface {
	GetCurrent(ctx context.Context) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateCurrent(ctx context.Context, req *types.UpdateUserRequest) (*models.User, error)
	SearchCandidates(ctx context.Context, query string) ([]models.User, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	RecipeReader
	Find(ctx context.Context, id uuid.UUID) (*models.Recipe, access.Decision, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.RecipeResponse, error)
	List(ctx context.Context, q types.ListRecipesQuery) ([]types.RecipeResponse, error)
	Create(ctx context.Context, req *types.CreateRecipeRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCooked(ctx context.Context, id uuid.UUID) (*types.RecipeResponse, error)
	SetImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*types.RecipeResponse, error)
}

// IFriendService defines the interface for friendship operations
type IFriendService interface {
	SendRequest(ctx context.Context, friendID uuid.UUID) (*models.Friendship, error)
	AcceptRequest(ctx context.Context, friendshipID uuid.UUID) (*models.Friendship, error)
	RejectRequest(ctx context.Context, friendshipID uuid.UUID) error
	CancelRequest(ctx context.Context, friendshipID uuid.UUID) error
	RemoveFriend(ctx context.Context, friendID uuid.UUID) error
	BlockUser(ctx context.Context, targetID uuid.UUID) error
	UnblockUser(ctx context.Context, targetID uuid.UUID) error
	StatusBetween(ctx context.Context, a, b uuid.UUID) (models.FriendshipStatus, error)
	ListFriends(ctx context.Context) ([]types.FriendResponse, error)
	ListRequests(ctx context.Context) (*types.FriendRequests, error)
}

// IShareService defines the interface for direct shares
type IShareService interface {
	access.ShareLookup
	Share(ctx context.Context, recipeID, friendID uuid.UUID, opts types.ShareOptions) (*models.RecipeShare, error)
	ShareWithMultiple(ctx context.Context, recipeID uuid.UUID, friendIDs []uuid.UUID, opts types.ShareOptions) ([]types.ShareResult, error)
	Unshare(ctx context.Context, recipeID, friendID uuid.UUID) error
	UnshareAll(ctx context.Context, recipeID uuid.UUID) (int64, error)
	ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]types.ShareResponse, error)
	ListReceived(ctx context.Context) ([]types.ReceivedShareResponse, error)
	SharedRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// IShareLinkService defines the interface for share links
type IShareLinkService interface {
	CreateLink(ctx context.Context, recipeID uuid.UUID, expiresInDays *int) (*models.ShareLink, error)
	ValidateShareCode(ctx context.Context, code string) (*types.ShareCodeValidation, error)
	AccessByCode(ctx context.Context, code string) (*types.SharedRecipeView, error)
	RecordAccess(ctx context.Context, code string) (*types.ShareCodeValidation, error)
	Revoke(ctx context.Context, linkID uuid.UUID) (*models.ShareLink, error)
	Reactivate(ctx context.Context, linkID uuid.UUID) (*models.ShareLink, error)
	DeleteLink(ctx context.Context, linkID uuid.UUID) error
	DeleteAllForRecipe(ctx context.Context, recipeID uuid.UUID) (int, error)
	ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]types.ShareLinkResponse, error)
}

// IShoppingService defines the interface for shopping lists
type IShoppingService interface {
	AddItem(ctx context.Context, req *types.AddShoppingItemRequest) (*types.AddItemResult, error)
	AddRecipeIngredients(ctx context.Context, recipeID uuid.UUID, req *types.AddRecipeIngredientsRequest) (*types.AddRecipeIngredientsResult, error)
	ToggleItem(ctx context.Context, itemID uuid.UUID) (*models.ShoppingItem, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	ClearChecked(ctx context.Context, listID uuid.UUID) (int64, error)
	CreateList(ctx context.Context, name string) (*models.ShoppingList, error)
	GetActiveList(ctx context.Context) (*types.ShoppingListResponse, error)
	GetList(ctx context.Context, listID uuid.UUID) (*types.ShoppingListResponse, error)
	ListLists(ctx context.Context) ([]models.ShoppingList, error)
	SetActiveList(ctx context.Context, listID uuid.UUID) (*models.ShoppingList, error)
	DeleteList(ctx context.Context, listID uuid.UUID) error
}

// ImageStore stores recipe images and hands out time-limited read URLs.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}
