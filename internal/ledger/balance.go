package ledger

import (
	"fmt"
	"math"

	"github.com/mmynk/kinship/internal/models"
)

// Direction says which side of the relationship has given more.
type Direction string

const (
	UserGaveMore  Direction = "user-gave-more"
	OtherGaveMore Direction = "other-gave-more"
	Even          Direction = "even"
)

// Ledger is the signed favor/gift balance with one friend.
// Positive Total means the user has given more.
type Ledger struct {
	Total     float64
	Direction Direction
}

// Magnitude returns the absolute amount owed in either direction.
func (l Ledger) Magnitude() float64 {
	return math.Abs(l.Total)
}

// Format renders the magnitude truncated to two decimals.
func (l Ledger) Format() string {
	return fmt.Sprintf("%.2f", math.Trunc(l.Magnitude()*100)/100)
}

// Contribution returns the signed amount one interaction adds to the ledger.
//
// Algorithm:
//   - meetup paid by the user, or outgoing gift: +price
//   - meetup paid by the friend, or incoming gift: -price
//   - split evenly, or no price: 0
func Contribution(in *models.Interaction) float64 {
	price := in.Amount()
	if price == 0 {
		return 0
	}
	switch in.Type {
	case models.TypeMeetup:
		switch in.Split {
		case models.SplitSelfPays:
			return price
		case models.SplitOtherPays:
			return -price
		}
	case models.TypeGift:
		switch in.Direction {
		case models.GiftOutgoing:
			return price
		case models.GiftIncoming:
			return -price
		}
	}
	return 0
}

// Balance folds the contributions of interactions into a Ledger.
// Amounts are summed in integer cents so the result does not depend on order.
func Balance(interactions []models.Interaction) Ledger {
	var cents int64
	for i := range interactions {
		cents += int64(math.Round(Contribution(&interactions[i]) * 100))
	}
	total := float64(cents) / 100
	switch {
	case cents > 0:
		return Ledger{Total: total, Direction: UserGaveMore}
	case cents < 0:
		return Ledger{Total: total, Direction: OtherGaveMore}
	default:
		return Ledger{Total: 0, Direction: Even}
	}
}
