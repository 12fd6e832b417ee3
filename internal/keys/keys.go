// Package keys computes single-table DynamoDB keys for every entity kind.
//
// All items live in one table keyed by (pk, sk). Kind tags and identifiers
// are joined with "#", so identifiers must not contain "#" themselves; ids
// minted by this server are UUIDs and ids from the identity provider are
// opaque alphanumeric strings, so this is not enforced at runtime.
package keys

import "fmt"

// Key is a full primary key for a point lookup.
type Key struct {
	PK string `dynamodbav:"pk"`
	SK string `dynamodbav:"sk"`
}

// Sort key used by metadata items that carry the entity itself.
const Metadata = "METADATA"

// Kind prefixes. Chosen so begins_with selects a logical collection
// without scanning.
const (
	UserPrefix       = "USER#"
	BoardPrefix      = "BOARD#"
	ListPrefix       = "LIST#"
	TaskPrefix       = "TASK#"
	AttachmentPrefix = "ATTACHMENT#"
	ImagePrefix      = "IMAGE#"
)

// Secondary index names.
const (
	// UserBoardIndex inverts (pk, sk), serving "users of a board" when the
	// membership edge itself is keyed for "boards of a user".
	UserBoardIndex = "UserBoardIndex"

	// EmailIndex keys user metadata items by their globally unique email.
	EmailIndex = "EmailIndex"

	// AssigneeIndex keys task items by assignee uid.
	AssigneeIndex = "AssigneeIndex"
)

// User returns the key of a user metadata item.
func User(uid string) Key {
	return Key{PK: UserPrefix + uid, SK: Metadata}
}

// Board returns the key of a board metadata item.
func Board(boardID string) Key {
	return Key{PK: BoardPrefix + boardID, SK: Metadata}
}

// Membership returns the key of a board membership edge. The edge sits in
// the user's partition so "boards of a user" is a plain range query; the
// inverse direction goes through UserBoardIndex.
func Membership(userID, boardID string) Key {
	return Key{PK: UserPrefix + userID, SK: BoardPrefix + boardID}
}

// List returns the key of a list item within a board partition.
func List(boardID, listID string) Key {
	return Key{PK: BoardPrefix + boardID, SK: ListPrefix + listID}
}

// Task returns the key of a task item within a board partition.
func Task(boardID, taskID string) Key {
	return Key{PK: BoardPrefix + boardID, SK: TaskPrefix + taskID}
}

// Attachment returns the key of an attachment metadata item under a task.
func Attachment(taskID, attachmentID string) Key {
	return Key{PK: TaskPrefix + taskID, SK: AttachmentPrefix + attachmentID}
}

// Image returns the key of a gallery image metadata item.
func Image(imageID string) Key {
	return Key{PK: ImagePrefix + imageID, SK: ImagePrefix + Metadata}
}

// UserRef and BoardRef format the partition-side values used when querying
// membership edges from either direction.
func UserRef(uid string) string      { return UserPrefix + uid }
func BoardRef(boardID string) string { return BoardPrefix + boardID }

// TaskRef formats the partition value holding a task's attachments.
func TaskRef(taskID string) string { return TaskPrefix + taskID }

// Split breaks a "KIND#id" value back into its id. It returns the input
// unchanged when no prefix matches.
func Split(ref, prefix string) string {
	if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
		return ref[len(prefix):]
	}
	return ref
}

// String implements fmt.Stringer for log output.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.PK, k.SK)
}
