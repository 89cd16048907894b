package database

import "hirelink/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Employer{},
		&models.Job{},
		&models.Application{},
		&models.Thread{},
		&models.Message{},
		&models.Attachment{},
		&models.MessageTemplate{},
		&models.Reaction{},
		&models.Notification{},
		&models.ApplicationStatusHistory{},
	}
}

// constraintTables maps check constraint names to their tables.
var constraintTables = map[string]string{
	"chk_message_sender_exclusive":        "messages",
	"chk_notification_recipient_exclusive": "notifications",
	"chk_reaction_reactor_exclusive":      "reactions",
}

// checkConstraints returns the exclusive-or invariants kept in the database
// as defense in depth behind the Sender/Party variants.
func checkConstraints() map[string]string {
	return map[string]string{
		// Exactly one of user sender, employer sender, or the system flag.
		"chk_message_sender_exclusive": `
			(is_system_message AND sender_user_id IS NULL AND sender_employer_id IS NULL)
			OR (NOT is_system_message AND sender_user_id IS NOT NULL AND sender_employer_id IS NULL)
			OR (NOT is_system_message AND sender_user_id IS NULL AND sender_employer_id IS NOT NULL)`,
		// Exactly one recipient side.
		"chk_notification_recipient_exclusive": `
			(recipient_user_id IS NOT NULL AND recipient_employer_id IS NULL)
			OR (recipient_user_id IS NULL AND recipient_employer_id IS NOT NULL)`,
		// Exactly one reactor side.
		"chk_reaction_reactor_exclusive": `
			(reactor_user_id IS NOT NULL AND reactor_employer_id IS NULL)
			OR (reactor_user_id IS NULL AND reactor_employer_id IS NOT NULL)`,
	}
}
