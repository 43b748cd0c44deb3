/*
Package ports defines the driven ports (interfaces) of the checker framework.

These interfaces decouple the checkers from where the raw configuration lives,
so the same validation runs over an in-memory store loaded from a file, a
Redis-backed store shared by several replicas, or a test fixture.

# Key Interfaces

  - ConfigStore: raw configuration get/set, in declaration order.
  - Locker: serializes validation passes over the same configuration.

RunConfigStoreContract and RunLockerContract are reusable test suites every
adapter runs against its implementation.
*/
package ports
