/*
Package storagemgr implements the storage manager of §4.3: a registry
mapping collection_full_name to a table.Table, and the five-step
pipeline (schema adoption, column expansion, NOT NULL enforcement,
_id dedup, type promotion) that turns an arbitrary incoming chunk into
one the table's schema accepts before handing it to table.Append.
*/
package storagemgr
