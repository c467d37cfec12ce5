// Package form holds the admin forms of the import/export flow: uploading a file,
// confirming a staged import, choosing an export format, and the bulk action
// format picker.
//
// Forms bind with gin's binding package and never fail hard on client input:
// every problem ends up in the form's Errors, keyed by the submitted field name.
package form
