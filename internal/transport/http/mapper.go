package http

import (
	"encoding/json"

	"github.com/whisperspace/server/internal/core"
	"github.com/whisperspace/server/internal/proto"
	"github.com/whisperspace/server/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom, proto.InboundTypeLeaveRoom,
		proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var data proto.RoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: roomCommandKind(inbound.Type),
			Room: data.Room,
		}, nil, nil

	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind:        core.CommandSendMessage,
			Room:        data.Room,
			Content:     data.Content,
			MessageType: store.MessageType(data.MessageType),
		}, nil, nil

	case proto.InboundTypeEditMessage:
		var data proto.EditMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.MessageID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "messageId is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandEditMessage,
			Room:      data.Room,
			MessageID: data.MessageID,
			Content:   data.Content,
		}, nil, nil

	case proto.InboundTypeDeleteMessage:
		var data proto.DeleteMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.MessageID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "messageId is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandDeleteMessage,
			Room:      data.Room,
			MessageID: data.MessageID,
		}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func roomCommandKind(inboundType string) core.CommandKind {
	switch inboundType {
	case proto.InboundTypeJoinRoom:
		return core.CommandJoinRoom
	case proto.InboundTypeLeaveRoom:
		return core.CommandLeaveRoom
	case proto.InboundTypeTypingStart:
		return core.CommandTypingStart
	default:
		return core.CommandTypingStop
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventJoinedRoom:
		return eventOutbound(proto.EventJoinedRoom, proto.RoomAck{Room: event.Room})
	case core.EventLeftRoom:
		return eventOutbound(proto.EventLeftRoom, proto.RoomAck{Room: event.Room})
	case core.EventUsersOnline:
		users := make([]proto.OnlineUser, 0, len(event.Online))
		for _, u := range event.Online {
			users = append(users, proto.OnlineUser{
				SessionID: u.SessionID,
				UserID:    u.UserID,
				Username:  u.Username,
			})
		}
		return eventOutbound(proto.EventUsersOnline, users)
	case core.EventNewMessage:
		return eventOutbound(proto.EventNewMessage, messagePayload(event.Message))
	case core.EventMessageEdited:
		return eventOutbound(proto.EventMessageEdited, messagePayload(event.Message))
	case core.EventMessageDeleted:
		return eventOutbound(proto.EventMessageDeleted, proto.MessageDeletedPayload{MessageID: event.MessageID})
	case core.EventUserTyping:
		return eventOutbound(proto.EventUserTyping, typingPayload(event))
	case core.EventUserStopTyping:
		return eventOutbound(proto.EventUserStopTyping, typingPayload(event))
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func messagePayload(msg *core.Message) proto.MessagePayload {
	if msg == nil {
		return proto.MessagePayload{}
	}
	payload := proto.MessagePayload{
		ID:          msg.ID,
		Room:        msg.Room,
		SenderID:    msg.SenderID,
		Sender:      msg.Sender,
		Content:     msg.Content,
		MessageType: string(msg.Type),
		IsEdited:    msg.IsEdited,
		CreatedAt:   msg.CreatedAt.Unix(),
	}
	if msg.EditedAt != nil {
		ts := msg.EditedAt.Unix()
		payload.EditedAt = &ts
	}
	return payload
}

func typingPayload(event *core.Event) proto.TypingPayload {
	return proto.TypingPayload{
		Room:     event.Room,
		UserID:   event.UserID,
		Username: event.Username,
	}
}
