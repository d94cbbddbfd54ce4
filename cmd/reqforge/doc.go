// Command reqforge manages requirements records: importing raw statements,
// running them through ambiguity detection and field extraction, and
// synthesizing specification documents from the results.
package main
