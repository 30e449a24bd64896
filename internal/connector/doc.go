// Package connector exposes a generic typed attribute interface over
// Microsoft Entra ID users, groups and licenses. A provisioning engine
// drives it with attribute sets; the connector translates each operation
// into Graph API calls and flattens the results back into attributes.
package connector
