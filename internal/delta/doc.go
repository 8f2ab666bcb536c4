// Package delta implements the delta engine (C5): a pure function that
// dispatches each statement in a delta to an add/replace/supplant/
// invalidate processor by the operator IRI carried in its graph slot,
// then applies them against a current model in remove-replace-add order.
package delta
