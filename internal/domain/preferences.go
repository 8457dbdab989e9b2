package domain

type Preferences struct {
	LastEmail string
}
