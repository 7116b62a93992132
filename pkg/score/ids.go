package score

// Handles into the document arenas.
type (
	RowID        int
	MeasureID    int
	ColumnID     int
	SymbolID     int
	ConnectiveID int
	FloatID      int
)

// NoID marks an absent reference for any handle type.
const NoID = -1

// MaxVoices is the number of voices a measure can hold.
const MaxVoices = 4
