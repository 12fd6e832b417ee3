package kanban

// Entity type tags stored on every item. Queries never dispatch on these;
// they exist so raw table dumps stay readable.
const (
	TypeUser       = "USER"
	TypeBoard      = "BOARD"
	TypeBoardUser  = "BOARD_USER"
	TypeList       = "LIST"
	TypeTask       = "TASK"
	TypeAttachment = "ATTACHMENT"
	TypeImage      = "IMAGE"
)

// Board visibility values.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// Membership roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a user metadata item (pk USER#uid, sk METADATA).
type User struct {
	PK         string `dynamodbav:"pk" json:"-"`
	SK         string `dynamodbav:"sk" json:"-"`
	UID        string `dynamodbav:"uid" json:"uid"`
	Email      string `dynamodbav:"email" json:"email"`
	Name       string `dynamodbav:"name" json:"name"`
	Picture    string `dynamodbav:"picture" json:"picture"`
	EntityType string `dynamodbav:"entityType" json:"-"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Board is a board metadata item (pk BOARD#id, sk METADATA).
type Board struct {
	PK         string `dynamodbav:"pk" json:"-"`
	SK         string `dynamodbav:"sk" json:"-"`
	ID         string `dynamodbav:"id" json:"id"`
	Title      string `dynamodbav:"title" json:"title"`
	Admin      string `dynamodbav:"admin" json:"admin"`
	CoverPhoto string `dynamodbav:"coverPhoto" json:"coverPhoto"`
	Visibility string `dynamodbav:"visibility" json:"visibility"`
	EntityType string `dynamodbav:"entityType" json:"-"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Membership is a board membership edge (pk USER#uid, sk BOARD#boardId).
// It exists once but is readable from both directions: the user's partition
// answers "boards of a user", UserBoardIndex answers "users of a board".
// UserName is denormalized from the user item so board views need no join.
type Membership struct {
	PK         string `dynamodbav:"pk" json:"-"`
	SK         string `dynamodbav:"sk" json:"-"`
	BoardID    string `dynamodbav:"boardId" json:"boardId"`
	UserID     string `dynamodbav:"userId" json:"userId"`
	Role       string `dynamodbav:"role" json:"role"`
	UserName   string `dynamodbav:"userName" json:"userName"`
	EntityType string `dynamodbav:"entityType" json:"-"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// List is a list item in the board partition (pk BOARD#boardId, sk LIST#id).
// Order is the source of truth for display position; reads sort by it.
type List struct {
	PK         string `dynamodbav:"pk" json:"-"`
	SK         string `dynamodbav:"sk" json:"-"`
	ID         string `dynamodbav:"id" json:"id"`
	BoardID    string `dynamodbav:"boardId" json:"boardId"`
	Title      string `dynamodbav:"title" json:"title"`
	Order      int    `dynamodbav:"order" json:"order"`
	EntityType string `dynamodbav:"entityType" json:"-"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Task is a task item in the board partition (pk BOARD#boardId, sk TASK#id).
// Assignee is omitted when unassigned so AssigneeIndex only indexes assigned
// tasks.
type Task struct {
	PK          string   `dynamodbav:"pk" json:"-"`
	SK          string   `dynamodbav:"sk" json:"-"`
	ID          string   `dynamodbav:"id" json:"id"`
	BoardID     string   `dynamodbav:"boardId" json:"boardId"`
	ListID      string   `dynamodbav:"listId" json:"listId"`
	Title       string   `dynamodbav:"title" json:"title"`
	Description string   `dynamodbav:"description" json:"description"`
	Assignee    string   `dynamodbav:"assignee,omitempty" json:"assignee,omitempty"`
	DueDate     string   `dynamodbav:"dueDate" json:"dueDate"`
	Labels      []string `dynamodbav:"labels" json:"labels"`
	Order       int      `dynamodbav:"order" json:"order"`
	EntityType  string   `dynamodbav:"entityType" json:"-"`
	CreatedAt   string   `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt   string   `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Attachment is attachment metadata under a task (pk TASK#taskId,
// sk ATTACHMENT#id). The content lives in S3 at S3Key; URL is a signed
// download link filled in on read, never persisted.
type Attachment struct {
	PK          string `dynamodbav:"pk" json:"-"`
	SK          string `dynamodbav:"sk" json:"-"`
	ID          string `dynamodbav:"id" json:"id"`
	TaskID      string `dynamodbav:"taskId" json:"taskId"`
	FileName    string `dynamodbav:"fileName" json:"fileName"`
	S3Key       string `dynamodbav:"s3Key" json:"s3Key"`
	ContentType string `dynamodbav:"contentType" json:"contentType"`
	Size        int64  `dynamodbav:"size" json:"size"`
	EntityType  string `dynamodbav:"entityType" json:"-"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt" json:"updatedAt"`
	URL         string `dynamodbav:"-" json:"url,omitempty"`
}

// Image is a site-gallery image metadata item (pk IMAGE#id,
// sk IMAGE#METADATA).
type Image struct {
	PK          string `dynamodbav:"pk" json:"-"`
	SK          string `dynamodbav:"sk" json:"-"`
	ID          string `dynamodbav:"id" json:"id"`
	S3Key       string `dynamodbav:"s3Key" json:"s3Key"`
	ContentType string `dynamodbav:"contentType" json:"contentType"`
	Description string `dynamodbav:"description" json:"description"`
	EntityType  string `dynamodbav:"entityType" json:"-"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt" json:"updatedAt"`
	URL         string `dynamodbav:"-" json:"url,omitempty"`
}

// BoardMember pairs a hydrated user with their role on a board.
type BoardMember struct {
	User
	Role string `json:"role"`
}
