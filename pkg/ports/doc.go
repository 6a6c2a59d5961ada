/*
Package ports defines the driven ports (interfaces) of the Nody engine.

These interfaces decouple graph compilation from where graph documents live,
so the same documents can come from memory, a directory or Redis.

# Key Interfaces

  - GraphLoader: Retrieves graph documents by id (read-only sources).
  - GraphStore: A GraphLoader that can also save and delete documents.
*/
package ports
