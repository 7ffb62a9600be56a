/*
Package index implements the in-memory index and index engine of
§4.6: an ordered (key, row id) store per index, MVCC-visible the same
way table rows are, plus the index_engine_t that fans a row out to
every index whose key schema matches it and routes search by
comparison operator.
*/
package index
