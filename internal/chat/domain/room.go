package domain

// ConversationRoomID returns the canonical room id for a two-party
// conversation. Participant ids are sorted before joining, so both sides
// converge on the same room no matter who initiates.
func ConversationRoomID(userIDA, userIDB string) string {
	if userIDB < userIDA {
		userIDA, userIDB = userIDB, userIDA
	}
	return userIDA + "-" + userIDB
}
