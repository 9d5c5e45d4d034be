package event

// LootPickedUp fires when a dog collects a lost object.
type LootPickedUp struct {
	SessionID int64
	DogID     int64
	LootID    int64
	LootType  int
	Score     int
}

// BagDeposited fires when a dog empties its bag at an office.
type BagDeposited struct {
	SessionID int64
	DogID     int64
	Items     int
}

// DogRetired fires after an idle dog's record was persisted and the dog
// left the game.
type DogRetired struct {
	DogID    int64
	Name     string
	Score    int
	PlayTime float64
}
