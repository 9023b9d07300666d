// Package access gates navigation by role: notLogin < user < admin.
package access
