package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.GenerateSlidesActivity)
	w.RegisterActivity(a.AssembleDeckActivity)
	w.RegisterActivity(a.ExtractSourceTextActivity)
	w.RegisterActivity(a.UpdateDeckStatusActivity)
	w.RegisterActivity(a.MarkDeckCompletedActivity)
}
