// Package validate implements struct-tag input/output validation for the
// serve pipeline (spec.md §4.8 step 6). No JSON-schema or struct
// validation library appears anywhere in the retrieved corpus, and the
// teacher's own schema package validates structurally by hand rather than
// importing one, so this validator follows that precedent.
package validate
