package app

import (
	"fmt"
	"strings"

	"interview-prep-service/internal/domain"
)

func seedQuestions(role string, pairs [][2]string) []domain.Question {
	prefix := strings.ToLower(strings.ReplaceAll(role, " ", "-"))
	questions := make([]domain.Question, 0, len(pairs))
	for i, p := range pairs {
		questions = append(questions, domain.Question{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Question: p[0],
			Answer:   p[1],
		})
	}
	return questions
}

// StarterTopics is the catalog loaded when no topic document exists yet.
func StarterTopics() []domain.Topic {
	return []domain.Topic{
		{
			ID:          "1",
			Title:       "Frontend Developer",
			Description: "Master React, Modern CSS, and Web Performance for product-based company interviews.",
			Skills:      []string{"React.js", "DOM manipulation", "CSS Flexbox", "TypeScript"},
			Experience:  "2 Years",
			QACount:     10,
			LastUpdated: "30 Apr 2025",
			Color:       "emerald",
			Questions: seedQuestions("Frontend", [][2]string{
				{"What is the Virtual DOM and how does React use it to optimize rendering?",
					"The Virtual DOM is a lightweight copy of the actual DOM. React uses it to perform 'diffing'—comparing the old state with the new state—and only updates the parts of the real DOM that actually changed, minimizing expensive browser reflows."},
				{"Explain the difference between useMemo and useCallback hooks.",
					"useMemo returns a memoized value of a function's result, while useCallback returns a memoized version of the function itself. Both are used to prevent unnecessary re-renders when passing props to optimized child components."},
				{"How does CSS Flexbox handle alignment along the main and cross axes?",
					"The main axis is defined by flex-direction (row/column). 'justify-content' aligns items along the main axis, while 'align-items' aligns them along the cross axis."},
				{"What are the advantages of using TypeScript over plain JavaScript?",
					"TypeScript provides static typing, which helps catch errors during development rather than at runtime. It improves IDE support, makes refactoring safer, and serves as living documentation for the codebase."},
				{"Explain the 'Closure' concept in JavaScript with a React example.",
					"A closure gives a function access to its outer scope even after the outer function has returned. In React, hooks like useEffect often rely on closures to access the current values of props and state within their callback functions."},
				{"What is Prop Drilling and how can you avoid it?",
					"Prop drilling is passing data through many layers of components that don't need it. It can be avoided using React Context API or state management libraries like Redux or Zustand."},
				{"What is the difference between SSR and CSR?",
					"CSR (Client-Side Rendering) renders the app in the browser using JS. SSR (Server-Side Rendering) generates the HTML on the server for each request, which is better for SEO and initial load speed."},
				{"How do you optimize a React application's performance?",
					"By using code-splitting (React.lazy), memoizing components (React.memo), optimizing images, avoiding anonymous functions in render, and using efficient state management."},
				{"Explain the 'Key' prop in React lists.",
					"Keys help React identify which items have changed, been added, or removed. They provide a stable identity to elements between re-renders for efficient DOM updates."},
				{"What are Higher-Order Components (HOC)?",
					"An HOC is a function that takes a component and returns a new component with enhanced functionality, allowing for logic reuse across different parts of an application."},
			}),
		},
		{
			ID:          "2",
			Title:       "Backend Developer",
			Description: "Master backend system design, database optimization, and high-concurrency Node.js.",
			Skills:      []string{"Node.js", "Express", "REST APIs", "MongoDB", "Redis"},
			Experience:  "3 Years",
			QACount:     10,
			LastUpdated: "1 May 2025",
			Color:       "amber",
			Questions: seedQuestions("Backend", [][2]string{
				{"Explain the Node.js Event Loop.",
					"The Event Loop allows Node.js to perform non-blocking I/O operations despite being single-threaded. It offloads operations to the system kernel whenever possible and processes callbacks in different phases like timers, I/O, and closing events."},
				{"What is the difference between SQL and NoSQL databases?",
					"SQL databases are relational, structured, and use schemas (e.g., PostgreSQL). NoSQL databases are non-relational, document-based, and flexible (e.g., MongoDB), making them suitable for unstructured data and scaling horizontally."},
				{"How do you secure a REST API?",
					"Security measures include using HTTPS, implementing JWT for authentication, setting rate limits, validating input to prevent SQL/NoSQL injection, and using CORS to restrict unauthorized cross-origin requests."},
				{"What is Database Indexing and how does it improve performance?",
					"Indexing creates a data structure (like a B-tree) that allows the database to find records without scanning every row in a table. It significantly speeds up read queries but can slow down write operations."},
				{"Explain the concept of Microservices architecture.",
					"Microservices involve breaking a large monolithic application into smaller, independent services that communicate via APIs. This allows teams to scale, deploy, and update parts of the system independently."},
				{"What is Middleware in Express.js?",
					"Middleware functions have access to the request object (req), response object (res), and the next function. They can execute code, modify the request/response, or terminate the cycle before reaching the final route handler."},
				{"How does Redis improve application performance?",
					"Redis is an in-memory data structure store used as a database, cache, and message broker. By storing frequently accessed data in RAM, it reduces latency compared to fetching from a disk-based database."},
				{"What is horizontal vs vertical scaling?",
					"Vertical scaling (scaling up) means adding more power (CPU, RAM) to an existing server. Horizontal scaling (scaling out) means adding more servers to the resource pool and using a load balancer."},
				{"Explain ACID properties in databases.",
					"ACID stands for Atomicity (all or nothing), Consistency (valid state), Isolation (concurrent transactions), and Durability (permanent changes). These ensure database transactions are processed reliably."},
				{"What is a 'Race Condition' in backend development?",
					"A race condition occurs when multiple processes or threads access shared data and try to change it at the same time, leading to unpredictable results. It's often solved using locks or mutexes."},
			}),
		},
		{
			ID:          "3",
			Title:       "DevOps Engineer",
			Description: "Scaling infrastructure with Kubernetes, Docker, and Automated CI/CD pipelines.",
			Skills:      []string{"CI/CD", "Docker", "Kubernetes", "AWS", "Terraform"},
			Experience:  "5 Years",
			QACount:     10,
			LastUpdated: "30 Apr 2025",
			Color:       "indigo",
			Questions: seedQuestions("DevOps", [][2]string{
				{"What is Infrastructure as Code (IaC) and why use it?",
					"IaC manages and provisions infrastructure through machine-readable definition files (e.g., Terraform, CloudFormation) rather than manual configuration. It ensures consistency, enables version control, and allows for automated deployments."},
				{"Explain the difference between a Container and a Virtual Machine.",
					"VMs virtualize hardware and include a full OS, making them heavy. Containers virtualize the OS kernel and share it with the host, making them lightweight, portable, and fast to start."},
				{"What is a Kubernetes Pod?",
					"A Pod is the smallest deployable unit in Kubernetes. It represents a single instance of a running process in a cluster and can contain one or more containers that share network and storage resources."},
				{"Describe a standard CI/CD pipeline.",
					"A pipeline typically includes stages for Code Commit, Automated Testing (Unit/Integration), Build (creating artifacts), Staging Deployment, and finally Production Deployment with monitoring."},
				{"What is Blue-Green Deployment?",
					"Blue-Green deployment is a strategy that uses two identical production environments. One (Blue) is live, while the other (Green) is where you deploy the new version. Once tested, traffic is routed to Green."},
				{"How do Docker layers work?",
					"Each command in a Dockerfile creates a new layer in the image. Layers are cached, so if you only change the last line of a Dockerfile, Docker only needs to rebuild that layer, speeding up the build process."},
				{"What is the purpose of Prometheus and Grafana?",
					"Prometheus is a monitoring system used for collecting metrics from targets at given intervals. Grafana is a visualization tool that connects to Prometheus to create dashboards for monitoring system health."},
				{"Explain 'Self-healing' in Kubernetes.",
					"Kubernetes monitors the state of your cluster. If a container or node fails, it automatically restarts, replaces, or reschedules containers to match the desired state defined in your configurations."},
				{"What is GitOps?",
					"GitOps is a practice where Git is the 'Single Source of Truth' for infrastructure and application configurations. Changes are applied via pull requests and automated sync tools like ArgoCD or Flux."},
				{"What is the 'Shift Left' security philosophy?",
					"Shift Left means integrating security testing and audits early in the development lifecycle (the 'left' side of the pipeline) rather than waiting until the deployment phase."},
			}),
		},
	}
}
