package kanban

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// CreateTaskInput carries the fields for a new task.
type CreateTaskInput struct {
	ListID      string
	Title       string
	Description string
	Assignee    string
	DueDate     string
	Labels      []string
	Order       int
}

// CreateTask writes a task item into the board partition.
func (s *Service) CreateTask(ctx context.Context, boardID string, in CreateTaskInput) (*Task, error) {
	taskID := s.newID()
	now := s.timestamp()
	k := keys.Task(boardID, taskID)
	labels := in.Labels
	if labels == nil {
		labels = []string{}
	}
	task := &Task{
		PK:          k.PK,
		SK:          k.SK,
		ID:          taskID,
		BoardID:     boardID,
		ListID:      in.ListID,
		Title:       in.Title,
		Description: in.Description,
		Assignee:    in.Assignee,
		DueDate:     in.DueDate,
		Labels:      labels,
		Order:       in.Order,
		EntityType:  TypeTask,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.putRecord(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns a single task.
func (s *Service) GetTask(ctx context.Context, boardID, taskID string) (*Task, error) {
	var task Task
	if err := s.getRecord(ctx, keys.Task(boardID, taskID), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetBoardTasks returns every task on a board in display order.
func (s *Service) GetBoardTasks(ctx context.Context, boardID string) ([]Task, error) {
	return s.queryTasks(ctx, store.QueryInput{
		KeyCondition: "pk = :pk AND begins_with(sk, :prefix)",
		Values: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: keys.BoardRef(boardID)},
			":prefix": &types.AttributeValueMemberS{Value: keys.TaskPrefix},
		},
	})
}

// GetListTasks returns the tasks of one list in display order. The key
// condition narrows to the board's tasks; the list membership is a non-key
// filter applied server-side.
func (s *Service) GetListTasks(ctx context.Context, boardID, listID string) ([]Task, error) {
	return s.queryTasks(ctx, store.QueryInput{
		KeyCondition: "pk = :pk AND begins_with(sk, :prefix)",
		Filter:       "listId = :listId",
		Values: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: keys.BoardRef(boardID)},
			":prefix": &types.AttributeValueMemberS{Value: keys.TaskPrefix},
			":listId": &types.AttributeValueMemberS{Value: listID},
		},
	})
}

// GetTasksByAssignee returns every task assigned to a user, across boards,
// via AssigneeIndex. Unassigned tasks are absent from the index entirely.
func (s *Service) GetTasksByAssignee(ctx context.Context, uid string) ([]Task, error) {
	return s.queryTasks(ctx, store.QueryInput{
		IndexName:    keys.AssigneeIndex,
		KeyCondition: "assignee = :assignee",
		Values: map[string]types.AttributeValue{
			":assignee": &types.AttributeValueMemberS{Value: uid},
		},
	})
}

// UpdateTask applies a partial update to a task item.
func (s *Service) UpdateTask(ctx context.Context, boardID, taskID string, patch store.Patch) (*Task, error) {
	item, err := s.store.Update(ctx, keys.Task(boardID, taskID), patch)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := attributevalue.UnmarshalMap(item, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// MoveTask reassigns a task to another list at the given position.
func (s *Service) MoveTask(ctx context.Context, boardID, taskID, listID string, order int) (*Task, error) {
	return s.UpdateTask(ctx, boardID, taskID, store.Patch{
		"listId": listID,
		"order":  order,
	})
}

// DeleteTask removes a task item. Attachment metadata under the task is
// cleaned up by the stream sweeper.
func (s *Service) DeleteTask(ctx context.Context, boardID, taskID string) error {
	return s.store.Delete(ctx, keys.Task(boardID, taskID))
}

// ReorderTasks persists a new display order within a list: position in ids
// becomes the order value. Also claims each task for listID, so a move plus
// reorder is a single call. One update per task, issued concurrently.
func (s *Service) ReorderTasks(ctx context.Context, boardID, listID string, ids []string) ([]Task, error) {
	err := fanOut(len(ids), func(i int) error {
		_, err := s.store.Update(ctx, keys.Task(boardID, ids[i]), store.Patch{
			"order":  i,
			"listId": listID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetListTasks(ctx, boardID, listID)
}

func (s *Service) queryTasks(ctx context.Context, in store.QueryInput) ([]Task, error) {
	items, err := s.store.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &tasks); err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
	return tasks, nil
}
