// Package dispatch computes barge bunkering schedules.
//
// The engine is a greedy, priority-ordered constructive algorithm: it
// repeatedly re-ranks the pending confirmed requests, takes the top one
// and tries to place it on the fleet. A single barge carrying every
// requested product is preferred (hybrid assignment); when none is
// feasible a multi-product request falls back to one barge per product,
// with the second delivery starting only after the first has fully
// ended at the ship. Terminal recharge visits are inserted into a
// barge's timeline whenever its tracked volume cannot cover a delivery
// or the mandatory-recharge rule has barred the product.
//
// The engine guarantees constraint satisfaction and deterministic,
// explainable ordering. It does not minimize total idle time; requests
// that cannot be placed within their service window are left
// unscheduled rather than failing the run.
package dispatch
