package blocks

import "time"

// BlockType categorizes the unit.
type BlockType string

const (
	TypeApartment BlockType = "apartment"
	TypeShop      BlockType = "shop"
	TypeOffice    BlockType = "office"
	TypeParking   BlockType = "parking"
)

// BlockStatus tracks unit availability on the market.
type BlockStatus string

const (
	StatusAvailable BlockStatus = "available"
	StatusReserved  BlockStatus = "reserved"
	StatusSold      BlockStatus = "sold"
)

// Placement stores the 3D layout position edited by the frontend layout
// editor. Persisted verbatim, no geometry logic on the server.
type Placement struct {
	GridX    float64 `json:"gridX"`
	GridY    float64 `json:"gridY"`
	GridZ    float64 `json:"gridZ"`
	Rotation float64 `json:"rotation"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Depth    float64 `json:"depth"`
}

// Block is a single sellable unit inside a project.
type Block struct {
	ID        int64       `json:"id"`
	ProjectID int64       `json:"projectId"`
	Number    string      `json:"number"`
	Type      BlockType   `json:"type"`
	Floor     *int        `json:"floor,omitempty"`
	Area      *float64    `json:"area,omitempty"`
	Rooms     *int        `json:"rooms,omitempty"`
	Price     float64     `json:"price"`
	Status    BlockStatus `json:"status"`
	Placement *Placement  `json:"placement,omitempty"`
	Notes     *string     `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CreateBlockRequest is the payload for registering a unit.
type CreateBlockRequest struct {
	ProjectID int64      `json:"projectId" validate:"required,gt=0"`
	Number    string     `json:"number" validate:"required,max=50"`
	Type      BlockType  `json:"type" validate:"required,oneof=apartment shop office parking"`
	Floor     *int       `json:"floor,omitempty"`
	Area      *float64   `json:"area,omitempty" validate:"omitempty,gt=0"`
	Rooms     *int       `json:"rooms,omitempty" validate:"omitempty,gte=0"`
	Price     float64    `json:"price" validate:"required,gt=0"`
	Placement *Placement `json:"placement,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// UpdateBlockRequest carries partial updates; nil fields stay untouched.
type UpdateBlockRequest struct {
	Number    *string      `json:"number,omitempty" validate:"omitempty,max=50"`
	Type      *BlockType   `json:"type,omitempty" validate:"omitempty,oneof=apartment shop office parking"`
	Floor     *int         `json:"floor,omitempty"`
	Area      *float64     `json:"area,omitempty" validate:"omitempty,gt=0"`
	Rooms     *int         `json:"rooms,omitempty" validate:"omitempty,gte=0"`
	Price     *float64     `json:"price,omitempty" validate:"omitempty,gt=0"`
	Status    *BlockStatus `json:"status,omitempty" validate:"omitempty,oneof=available reserved sold"`
	Placement *Placement   `json:"placement,omitempty"`
	Notes     *string      `json:"notes,omitempty"`
}

// ListBlocksRequest filters the listing.
type ListBlocksRequest struct {
	ProjectID int64
	Status    BlockStatus
	Type      BlockType
}
