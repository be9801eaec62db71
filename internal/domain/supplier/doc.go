// Package supplier contains the supplier-catalog bounded context.
// This context covers access to the third-party product-catalog-and-fulfillment
// platform: the credential lifecycle, the stable catalog/order model exposed to
// the rest of the application, and the collaborator ports the access core needs.
//
// Key concepts:
//   - TokenPair: the access/refresh credential bundle issued by the platform
//   - TokenStore: port for the durable token record shared across instances
//   - ProductCache / CategoryCache: read-through cache ports for slow-changing entities
//   - Product, Variant, CategoryNode, Order: normalized shapes decoupled from
//     the platform's field names and nesting
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package supplier
