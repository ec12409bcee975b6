// Package voucher contains the Voucher bounded context.
// It owns the document data model for the finance office forms (payment,
// receive and journal vouchers plus withdrawal, return and purchase
// requests), the amount coercion and total rules, the per-variant layout
// descriptors and the page builder that turns a document into a printable
// A4 page description.
package voucher
