package model

// The filter helpers below mirror the web client's persisted-data
// projections: given a raw document map they keep exactly the fields the
// database schema expects and drop everything else. Trigger handlers run
// incoming data through these before writing it back to another document.

func pick(m map[string]interface{}, keys ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

func submap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return map[string]interface{}{}
}

// RequestUserData projects a user map down to the summary shape embedded in
// requests, chats and messages.
func RequestUserData(user map[string]interface{}) map[string]interface{} {
	out := pick(user,
		"name", "email", "uid", "id", "photo", "type", "grade", "gender",
		"payments", "proxy")
	if payments, ok := user["payments"].(map[string]interface{}); ok {
		out["hourlyCharge"] = payments["hourlyCharge"]
	} else {
		out["hourlyCharge"] = float64(0)
	}
	return out
}

// MessageData projects a message map down to its persisted fields.
func MessageData(msg map[string]interface{}) map[string]interface{} {
	out := pick(msg, "message", "timestamp")
	out["sentBy"] = RequestUserData(submap(msg, "sentBy"))
	return out
}

// ChatData projects a chat map down to its persisted fields.
func ChatData(chat map[string]interface{}) map[string]interface{} {
	out := pick(chat, "chatters", "chatterEmails", "chatterUIDs", "location")
	out["lastMessage"] = MessageData(submap(chat, "lastMessage"))
	out["createdBy"] = RequestUserData(submap(chat, "createdBy"))
	// The chatter name and photo double as the chat's.
	out["name"] = stringOr(chat, "name")
	out["photo"] = stringOr(chat, "photo")
	return out
}

func stringOr(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
