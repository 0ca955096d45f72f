package workflows

import "merchant-kyc-portal/activities"

// a provides method references for workflow.ExecuteActivity calls. The
// populated struct is registered with the activity worker.
var a *activities.Activities
