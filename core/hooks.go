package core

// AfterMapper is implemented by records that need to run logic once all of
// their columns have been assigned. It is called on a pointer to the record.
type AfterMapper interface{ AfterMap() error }
