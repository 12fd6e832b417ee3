package kanban

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// CreateBoardInput carries the fields for a new board. Users lists the uids
// to seed as members; the admin is always included whether or not it appears
// there.
type CreateBoardInput struct {
	Title      string
	Admin      string
	CoverPhoto string
	Visibility string
	Users      []string
}

// CreateBoard writes the board metadata item plus one membership edge per
// seeded member, in a single transaction so a board never appears without
// its admin edge. Unknown uids are skipped the way the original invite list
// tolerated stale entries. Each edge carries the member's display name so
// board views need no user lookup.
func (s *Service) CreateBoard(ctx context.Context, in CreateBoardInput) (*Board, error) {
	boardID := s.newID()
	now := s.timestamp()
	k := keys.Board(boardID)

	board := &Board{
		PK:         k.PK,
		SK:         k.SK,
		ID:         boardID,
		Title:      in.Title,
		Admin:      in.Admin,
		CoverPhoto: in.CoverPhoto,
		Visibility: in.Visibility,
		EntityType: TypeBoard,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Admin first, then invitees, deduplicated.
	uids := make([]string, 0, len(in.Users)+1)
	seen := map[string]bool{}
	for _, uid := range append([]string{in.Admin}, in.Users...) {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		uids = append(uids, uid)
	}

	// Hydrate members concurrently to denormalize display names. A missing
	// user drops off the member list rather than failing the board.
	members := make([]*User, len(uids))
	var mu sync.Mutex
	err := fanOut(len(uids), func(i int) error {
		user, err := s.GetUser(ctx, uids[i])
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("skipping unknown board member",
				zap.String("uid", uids[i]),
				zap.String("boardId", boardID),
			)
			return nil
		}
		if err != nil {
			return err
		}
		mu.Lock()
		members[i] = user
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	boardItem, err := attributevalue.MarshalMap(board)
	if err != nil {
		return nil, err
	}
	puts := []store.Item{boardItem}
	for _, member := range members {
		if member == nil {
			continue
		}
		role := RoleMember
		if member.UID == in.Admin {
			role = RoleAdmin
		}
		edgeItem, err := attributevalue.MarshalMap(s.newMembership(boardID, member, role, now))
		if err != nil {
			return nil, err
		}
		puts = append(puts, edgeItem)
	}

	if store.CanTransact(len(puts)) {
		if err := s.store.TransactWrite(ctx, puts, nil); err != nil {
			return nil, err
		}
	} else {
		// Oversized member lists fall back to batch writes; the board item
		// goes first so edges never point at nothing.
		if _, err := s.store.Put(ctx, boardItem); err != nil {
			return nil, err
		}
		if err := s.store.BatchPut(ctx, puts[1:]); err != nil {
			return nil, err
		}
	}
	return board, nil
}

func (s *Service) newMembership(boardID string, user *User, role, now string) *Membership {
	k := keys.Membership(user.UID, boardID)
	return &Membership{
		PK:         k.PK,
		SK:         k.SK,
		BoardID:    boardID,
		UserID:     user.UID,
		Role:       role,
		UserName:   user.Name,
		EntityType: TypeBoardUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// GetBoard returns a board's metadata.
func (s *Service) GetBoard(ctx context.Context, boardID string) (*Board, error) {
	var board Board
	if err := s.getRecord(ctx, keys.Board(boardID), &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// UpdateBoard applies a partial update to the board metadata item.
func (s *Service) UpdateBoard(ctx context.Context, boardID string, patch store.Patch) (*Board, error) {
	item, err := s.store.Update(ctx, keys.Board(boardID), patch)
	if err != nil {
		return nil, err
	}
	var board Board
	if err := attributevalue.UnmarshalMap(item, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// DeleteBoard removes a board, its membership edges, and every list and task
// in the board partition. The board item and its edges go in one
// all-or-nothing transaction so memberships can never outlive the board by
// more than the stream sweeper's lag; the partition contents follow with
// batch deletes.
func (s *Service) DeleteBoard(ctx context.Context, boardID string) error {
	if _, err := s.GetBoard(ctx, boardID); err != nil {
		return err
	}

	edges, err := s.boardEdges(ctx, boardID)
	if err != nil {
		return err
	}
	deletes := []keys.Key{keys.Board(boardID)}
	for _, edge := range edges {
		deletes = append(deletes, keys.Key{PK: edge.PK, SK: edge.SK})
	}

	if store.CanTransact(len(deletes)) {
		if err := s.store.TransactWrite(ctx, nil, deletes); err != nil {
			return err
		}
	} else {
		if err := s.store.BatchDelete(ctx, deletes); err != nil {
			return err
		}
	}

	// Lists and tasks share the board partition; sweep whatever remains.
	items, err := s.store.Query(ctx, store.QueryInput{
		KeyCondition: "pk = :pk",
		Values: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: keys.BoardRef(boardID)},
		},
	})
	if err != nil {
		return err
	}
	contents := make([]keys.Key, 0, len(items))
	for _, item := range items {
		var k keys.Key
		if err := attributevalue.UnmarshalMap(item, &k); err != nil {
			return err
		}
		contents = append(contents, k)
	}
	if err := s.store.BatchDelete(ctx, contents); err != nil {
		return err
	}

	s.logger.Info("board deleted",
		zap.String("boardId", boardID),
		zap.Int("edges", len(edges)),
		zap.Int("items", len(contents)),
	)
	return nil
}

// InviteUser resolves the invitee by email and writes a member edge keyed on
// their uid. The email never appears in the edge key.
func (s *Service) InviteUser(ctx context.Context, boardID, email string) (*Membership, error) {
	if _, err := s.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	// Re-inviting an existing member must not rewrite their edge: the admin
	// edge would be demoted to member.
	var existing Membership
	err = s.getRecord(ctx, keys.Membership(user.UID, boardID), &existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	edge := s.newMembership(boardID, user, RoleMember, s.timestamp())
	if err := s.putRecord(ctx, edge); err != nil {
		return nil, err
	}
	return edge, nil
}

// RemoveUser deletes exactly one membership edge.
func (s *Service) RemoveUser(ctx context.Context, boardID, userID string) error {
	return s.store.Delete(ctx, keys.Membership(userID, boardID))
}

// GetUserBoards lists the boards a user belongs to: one edge query on the
// user's partition, then a point read per board to hydrate. The per-board
// reads run concurrently; a dangling edge (board already deleted) is skipped.
func (s *Service) GetUserBoards(ctx context.Context, uid string) ([]Board, error) {
	items, err := s.store.Query(ctx, store.QueryInput{
		KeyCondition: "pk = :pk AND begins_with(sk, :prefix)",
		Values: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: keys.UserRef(uid)},
			":prefix": &types.AttributeValueMemberS{Value: keys.BoardPrefix},
		},
	})
	if err != nil {
		return nil, err
	}
	edges := make([]Membership, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, err
	}

	hydrated := make([]*Board, len(edges))
	var mu sync.Mutex
	err = fanOut(len(edges), func(i int) error {
		board, err := s.GetBoard(ctx, edges[i].BoardID)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("dangling membership edge",
				zap.String("uid", uid),
				zap.String("boardId", edges[i].BoardID),
			)
			return nil
		}
		if err != nil {
			return err
		}
		mu.Lock()
		hydrated[i] = board
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	boards := make([]Board, 0, len(hydrated))
	for _, board := range hydrated {
		if board != nil {
			boards = append(boards, *board)
		}
	}
	return boards, nil
}

// GetBoardUsers lists a board's members with roles: one inverse-index edge
// query, then a point read per user. Known N+1; fine at this scale.
func (s *Service) GetBoardUsers(ctx context.Context, boardID string) ([]BoardMember, error) {
	edges, err := s.boardEdges(ctx, boardID)
	if err != nil {
		return nil, err
	}

	hydrated := make([]*BoardMember, len(edges))
	var mu sync.Mutex
	err = fanOut(len(edges), func(i int) error {
		user, err := s.GetUser(ctx, edges[i].UserID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mu.Lock()
		hydrated[i] = &BoardMember{User: *user, Role: edges[i].Role}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	members := make([]BoardMember, 0, len(hydrated))
	for _, member := range hydrated {
		if member != nil {
			members = append(members, *member)
		}
	}
	return members, nil
}

// boardEdges returns every membership edge of a board via the inverse index.
func (s *Service) boardEdges(ctx context.Context, boardID string) ([]Membership, error) {
	items, err := s.store.Query(ctx, store.QueryInput{
		IndexName:    keys.UserBoardIndex,
		KeyCondition: "sk = :sk AND begins_with(pk, :prefix)",
		Values: map[string]types.AttributeValue{
			":sk":     &types.AttributeValueMemberS{Value: keys.BoardRef(boardID)},
			":prefix": &types.AttributeValueMemberS{Value: keys.UserPrefix},
		},
	})
	if err != nil {
		return nil, err
	}
	edges := make([]Membership, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}
