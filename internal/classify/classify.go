// Package classify decides the aggressor side of a trade.
package classify

import "github.com/tapeworks/futures-rollup/internal/model"

// Aggressor returns the aggressor side of a trade. An explicit, unambiguous
// tag wins; otherwise the price is compared to the quote midpoint when both
// sides of the book are present. Trades exactly at the midpoint, or without
// usable quotes, are unknown.
func Aggressor(price, bid, ask float64, tagged model.Side) model.Side {
	if tagged == model.SideBuy || tagged == model.SideSell {
		return tagged
	}

	if bid > 0 && ask > 0 {
		mid := (bid + ask) / 2
		switch {
		case price > mid:
			return model.SideBuy
		case price < mid:
			return model.SideSell
		}
	}

	return model.SideUnknown
}
