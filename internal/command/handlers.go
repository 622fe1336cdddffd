package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/models"
)

type UserService interface {
	Create(ctx context.Context, name, pass string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
	AttachRoom(ctx context.Context, userID, roomID int64) error
}

type RoomService interface {
	Create(ctx context.Context, name string) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	Delete(ctx context.Context, id int64) error
}

type MessageService interface {
	Create(ctx context.Context, content string) (*models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	Delete(ctx context.Context, id int64) error
}

var (
	idParam          = Param{Name: "ID", Prompt: "ID: ", Kind: Integer}
	userIDParam      = Param{Name: "user ID", Prompt: "User ID: ", Kind: Integer}
	roomIDParam      = Param{Name: "room ID", Prompt: "Room ID: ", Kind: Integer}
	accountNameParam = Param{Name: "account name", Prompt: "Account name: "}
	passwordParam    = Param{Name: "password", Prompt: "Pass: "}
	roomNameParam    = Param{Name: "room name", Prompt: "Room name: "}
)

// NewRouter builds the command table over the given services.
func NewRouter(users UserService, rooms RoomService, msgs MessageService) *Router {
	routes := []Route{
		{
			Keyword: "get_msgs",
			Domain:  DomainMessages,
			Op:      OpGet,
			Summary: "Get messages",
			Intro:   "Requesting messages...",
			Run: func(ctx context.Context, _ Args) (string, error) {
				rows, err := msgs.List(ctx)
				if err != nil {
					return "", err
				}
				return listing("Messages", rows)
			},
		},
		{
			Keyword: "insert_msg",
			Domain:  DomainMessages,
			Op:      OpInsert,
			Summary: "Sends a message",
			Intro:   "Inserting a message...",
			Params:  []Param{{Name: "content", Prompt: "content: "}},
			Run: func(ctx context.Context, args Args) (string, error) {
				msg, err := msgs.Create(ctx, args[0].Text)
				if err != nil {
					return "", err
				}
				return inserted(msg.Content), nil
			},
		},
		{
			Keyword: "delete_msg",
			Domain:  DomainMessages,
			Op:      OpDelete,
			Summary: "Deletes a message",
			Intro:   "Deleting a message...",
			Params:  []Param{idParam},
			Run: func(ctx context.Context, args Args) (string, error) {
				return deleted(msgs.Delete(ctx, args[0].Int))
			},
		},
		notImplemented("edit_msg", DomainMessages, "Edits a message"),
		{
			Keyword: "get_users",
			Domain:  DomainUsers,
			Op:      OpGet,
			Summary: "Get users",
			Intro:   "Requesting users...",
			Run: func(ctx context.Context, _ Args) (string, error) {
				rows, err := users.List(ctx)
				if err != nil {
					return "", err
				}
				return listing("Users", rows)
			},
		},
		{
			Keyword: "insert_user",
			Domain:  DomainUsers,
			Op:      OpInsert,
			Summary: "Creates a new account",
			Intro:   "Creating a new account...",
			Params:  []Param{accountNameParam, passwordParam},
			Run: func(ctx context.Context, args Args) (string, error) {
				user, err := users.Create(ctx, args[0].Text, args[1].Text)
				if err != nil {
					return "", err
				}
				return inserted(user.Name), nil
			},
		},
		{
			Keyword: "delete_user",
			Domain:  DomainUsers,
			Op:      OpDelete,
			Summary: "Deletes a user",
			Intro:   "Deleting a user...",
			Params:  []Param{idParam},
			Run: func(ctx context.Context, args Args) (string, error) {
				return deleted(users.Delete(ctx, args[0].Int))
			},
		},
		notImplemented("edit_user", DomainUsers, "Edits a user"),
		{
			Keyword: "get_rooms",
			Domain:  DomainRooms,
			Op:      OpGet,
			Summary: "Get rooms",
			Intro:   "Requesting rooms...",
			Run: func(ctx context.Context, _ Args) (string, error) {
				rows, err := rooms.List(ctx)
				if err != nil {
					return "", err
				}
				return listing("Rooms", rows)
			},
		},
		{
			Keyword: "insert_room",
			Domain:  DomainRooms,
			Op:      OpInsert,
			Summary: "Creates a new room",
			Intro:   "Creating a new room...",
			Params:  []Param{roomNameParam},
			Run: func(ctx context.Context, args Args) (string, error) {
				room, err := rooms.Create(ctx, args[0].Text)
				if err != nil {
					return "", err
				}
				return inserted(room.Name), nil
			},
		},
		{
			Keyword: "delete_room",
			Domain:  DomainRooms,
			Op:      OpDelete,
			Summary: "Deletes a room",
			Intro:   "Deleting a room...",
			Params:  []Param{idParam},
			Run: func(ctx context.Context, args Args) (string, error) {
				return deleted(rooms.Delete(ctx, args[0].Int))
			},
		},
		notImplemented("edit_room", DomainRooms, "Edits a room"),
		{
			Keyword: "attach_user_to_room",
			Domain:  DomainRelations,
			Op:      OpAttach,
			Summary: "Adds a room to a user's rooms",
			Intro:   "Attaching a user to a room...",
			Params:  []Param{userIDParam, roomIDParam},
			Run: func(ctx context.Context, args Args) (string, error) {
				userID, roomID := args[0].Int, args[1].Int
				if err := users.AttachRoom(ctx, userID, roomID); err != nil {
					return "", err
				}
				return fmt.Sprintf("Attached user %d to room %d", userID, roomID), nil
			},
		},
	}
	return newRouter(routes...)
}

func notImplemented(keyword string, domain Domain, summary string) Route {
	return Route{
		Keyword: keyword,
		Domain:  domain,
		Op:      OpEdit,
		Summary: summary,
		Run: func(context.Context, Args) (string, error) {
			return "", apperr.NotImplemented(keyword)
		},
	}
}

func listing(label string, rows any) (string, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return label + ": " + string(b), nil
}

func inserted(value string) string {
	return fmt.Sprintf("Inserted %q", value)
}

func deleted(err error) (string, error) {
	if err != nil {
		return "", err
	}
	return "Deleted", nil
}
