// Package schema loads declarative form definitions and turns them into
// engines.
//
// Forms are written in CUE or HCL. Both compile to the same Form: a name, an
// optional validation mode, a defaults object and an ordered list of field
// declarations. Validate reports every problem at once with stable E2xx
// codes; Build registers the fields on a fresh engine.
//
// CUE layout:
//
//	form: signup: {
//		mode: "blur"
//		defaults: {name: "", age: 18}
//		fields: {
//			name: {type: "text", required: true, minLength: 2}
//			"address.city": {type: "text"}
//		}
//	}
//
// HCL layout:
//
//	form "signup" {
//	  mode     = "blur"
//	  defaults = { name = "", age = 18 }
//	  field "name" {
//	    type       = "text"
//	    required   = true
//	    min_length = 2
//	  }
//	}
package schema
