package kanban

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// CreateListInput carries the fields for a new list.
type CreateListInput struct {
	Title string
	Order int
}

// CreateList writes a list item into the board partition.
func (s *Service) CreateList(ctx context.Context, boardID string, in CreateListInput) (*List, error) {
	listID := s.newID()
	now := s.timestamp()
	k := keys.List(boardID, listID)
	list := &List{
		PK:         k.PK,
		SK:         k.SK,
		ID:         listID,
		BoardID:    boardID,
		Title:      in.Title,
		Order:      in.Order,
		EntityType: TypeList,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.putRecord(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetBoardLists returns the board's lists in display order.
func (s *Service) GetBoardLists(ctx context.Context, boardID string) ([]List, error) {
	items, err := s.store.Query(ctx, store.QueryInput{
		KeyCondition: "pk = :pk AND begins_with(sk, :prefix)",
		Values: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: keys.BoardRef(boardID)},
			":prefix": &types.AttributeValueMemberS{Value: keys.ListPrefix},
		},
	})
	if err != nil {
		return nil, err
	}
	lists := make([]List, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &lists); err != nil {
		return nil, err
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].Order < lists[j].Order })
	return lists, nil
}

// RenameList changes a list's title.
func (s *Service) RenameList(ctx context.Context, boardID, listID, title string) (*List, error) {
	return s.UpdateList(ctx, boardID, listID, store.Patch{"title": title})
}

// UpdateList applies a partial update to a list item.
func (s *Service) UpdateList(ctx context.Context, boardID, listID string, patch store.Patch) (*List, error) {
	item, err := s.store.Update(ctx, keys.List(boardID, listID), patch)
	if err != nil {
		return nil, err
	}
	var list List
	if err := attributevalue.UnmarshalMap(item, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteList removes a list item. Tasks that referenced it keep their listId
// until the client reassigns them, matching the original behavior.
func (s *Service) DeleteList(ctx context.Context, boardID, listID string) error {
	return s.store.Delete(ctx, keys.List(boardID, listID))
}

// ReorderLists persists a new display order: the position of each id in ids
// becomes its order value, one small update per list, issued concurrently.
// Partial failure leaves a mixed ordering; retrying the same call converges.
func (s *Service) ReorderLists(ctx context.Context, boardID string, ids []string) ([]List, error) {
	err := fanOut(len(ids), func(i int) error {
		_, err := s.store.Update(ctx, keys.List(boardID, ids[i]), store.Patch{"order": i})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetBoardLists(ctx, boardID)
}
