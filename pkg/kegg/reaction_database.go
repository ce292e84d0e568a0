package kegg

// ReactionDatabase manages a KEGG reaction flat-file database.
type ReactionDatabase struct {
	Database[*Reaction]
}

// NewReactionDatabase returns an empty reaction database backed by filename.
func NewReactionDatabase(filename string) *ReactionDatabase {
	return &ReactionDatabase{Database: newDatabase(filename, "reaction", ParseReaction)}
}
