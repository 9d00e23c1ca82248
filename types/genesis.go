package types

// GenesisAccount seeds one account balance before the first block.
type GenesisAccount struct {
	Account AccountID `cramberry:"1" json:"account" toml:"account"`
	Balance Balance   `cramberry:"2" json:"balance" toml:"balance"`
}

// GenesisDoc is the initial chain state.
type GenesisDoc struct {
	ChainID     string           `cramberry:"1"`
	GenesisTime Timestamp        `cramberry:"2"`
	Accounts    []GenesisAccount `cramberry:"3"`
}

// GenesisResult is the application's reply to genesis.
type GenesisResult struct {
	// Height of the runtime after genesis. Always 0.
	Height uint64 `cramberry:"1"`
	// State root after seeding the genesis accounts.
	AppHash AppHash `cramberry:"2"`
}
