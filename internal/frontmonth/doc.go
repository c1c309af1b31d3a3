// Package frontmonth collapses the set of simultaneously trading contracts
// for a parent ticker into a single continuous series.
//
// Each contract carries a rolling 5-minute traded-volume window, bucketed per
// minute. Whichever contract holds the most rolling volume is the ticker's
// active (front-month) contract; trades on other contracts are skipped.
// Multi-leg spread symbols are rejected outright.
package frontmonth
