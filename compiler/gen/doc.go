// Package gen synthesizes CRUD procedure plans, authorization rule
// tables, and emission artifacts from normalized apigen schemas.
package gen
