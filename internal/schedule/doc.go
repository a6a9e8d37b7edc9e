// Package schedule defines the schedule aggregate and the registry that
// owns live schedules.
//
// # Overview
//
// A Schedule binds an identifier and a raw time string to the resolved
// execution-time strategy: either the cron calculator for calendar
// patterns, or the reboot strategy when a reboot-capable schedule uses the
// "@reboot" marker. Construction is the only validation point; a Schedule
// either exists fully valid or not at all, and is immutable afterwards.
//
// Schedule families ("types") decide which grammar applies and whether the
// reboot marker is accepted. A changed definition requires building a new
// Schedule and replacing it in the Registry; that is what Registry.Rebuild
// does on config reload.
package schedule
