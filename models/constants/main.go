package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the results api and its
	associated services.
*/
type Category string
type QueryMode string
