package models

// ModelRegistry is the list handed to gorm's AutoMigrate in dev environments.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
