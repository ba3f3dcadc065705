package room

import "duelserver/internal/ruleserr"

var (
	errRoomNotFound   = ruleserr.Rules(ruleserr.CodeRoomNotFound, "room not found")
	errRoomNotWaiting = ruleserr.Rules(ruleserr.CodeRoomNotWaiting, "room is not accepting new players")
	errRoomFull       = ruleserr.Rules(ruleserr.CodeRoomFull, "room already has two players")
	errNotParticipant = ruleserr.Authorization(ruleserr.CodeWrongActor, "user is not a participant in this room")
)
