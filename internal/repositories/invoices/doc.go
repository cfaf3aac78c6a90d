// Package invoices reads invoice documents from a directory of JSON files.
//
// Every regular file whose name ends in ".json" (any case) is expected to
// hold a JSON array of invoice documents. Files are visited in lexical name
// order, which is the enumeration order the merge step relies on for
// tie-breaking. A file that fails to parse is skipped and logged; a missing
// directory is created and reads as empty. Files whose bytes are identical
// to an earlier file in the same read are parsed once.
package invoices
